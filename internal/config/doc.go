// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for iachat.
//
// Configuration is read from ~/.iachat/config.toml with built-in defaults
// and IACHAT_* environment variable overrides, and is validated once at
// startup. The structured extra field sent under client_data is described
// here as an explicit record (enabled, label, transport key) instead of
// being probed ad hoc at each use site.
//
// The config file can be watched for changes; edits to the prompt list or
// the structured field are picked up without restarting the client.
package config
