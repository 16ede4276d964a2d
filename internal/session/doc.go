// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the per-run session identity.
//
// A Session is built once at startup from configuration and is immutable
// afterwards: token, external user identifier, backend base URL and tenant
// short name. Collaborators receive it by value; nothing in the program can
// mutate it mid-run.
package session
