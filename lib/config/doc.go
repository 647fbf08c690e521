// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the TurtleBot
// adapter and its binaries.
//
// Configuration is loaded from a single file specified by either the
// TURTLEBRIDGE_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no automatic file search and no
// environment variable override of individual values.
//
// YAML is the primary format. Files named *.json or *.jsonc are accepted
// too; comments and trailing commas are stripped before parsing, and the
// same field names apply.
//
// Timeouts are written as float seconds ([Seconds]), matching the
// `inspection_task_timeout: 60` style of robot mission configuration.
// ${HOME} and ${VAR:-default} patterns are expanded in the storage
// folder.
//
// Key exports:
//
//   - [Config] -- rosbridge, topics, mission, metadata, storage, logging
//   - [Default] -- defaults every file is merged over
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports all problems at once
package config
