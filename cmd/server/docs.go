// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package main provides the Bookrec HTTP server
//
// Regenerate the docs package after changing handler annotations:
//
//	swag init -g cmd/server/docs.go -o docs --parseInternal
//
// @title Bookrec API
// @version 1.0
// @description Cluster-constrained booking recommendations served from offline user and booking clusters.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/bookrec/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:5000
// @BasePath /
// @schemes http https
//
// @tag.name Core
// @tag.description Liveness and health endpoints
//
// @tag.name Recommendations
// @tag.description Cluster-constrained and item recommendations
package main
