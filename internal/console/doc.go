// Package console provides the server-rendered web UI.
//
// # Overview
//
// The console is the browser-facing half of the product:
//
//   - Marketing: landing page and pricing with a plan upgrade action
//   - Auth: registration and login against the backend API
//   - Dashboard: usage counters and recent activity
//   - Organizations: tenant list plus a 4-step setup wizard
//   - Knowledge: per-tenant document and URL ingestion
//   - Chat: a playground for talking to the active tenant's bot
//
// # Architecture
//
// Components:
//
//   - Console: main struct coordinating handlers and templates
//   - Templates: HTML templates embedded in the binary
//   - Handlers: one file per page area (auth, dashboard, tenants, ...)
//
// Every piece of business logic lives in the backend API; the console only
// shapes requests, holds browser sessions, and renders what comes back.
//
// # Plan gating
//
// Each session carries a plan: free_trial, standard, or expired. The session
// manager re-derives free_trial to expired whenever the trial end has passed,
// so handlers only ever check the effective plan. An expired plan blocks
// knowledge mutations and the chat playground and points at /pricing.
//
// # Wizard
//
// Tenant create/edit runs through a 4-step wizard whose draft lives
// server-side, keyed by session:
//
//  1. Name (the only validated field)
//  2. Social page URLs
//  3. Webhook tokens
//  4. Telegram bot config
//
// Next/Back are bounded to [1,4]; cancel discards the draft.
//
// # CSRF Protection
//
// All form submissions require CSRF tokens (double-submit cookie):
//
//	<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
//
// Tokens are validated on every mutating route.
//
// # Usage
//
// Create the console and mount its routes:
//
//	c := console.New(sessions, backendClient, chatHistory, metrics, cfg)
//	c.RegisterRoutes(mux)
package console
