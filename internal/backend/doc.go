// Package backend is the typed HTTP client for the external RAG backend.
//
// The backend owns every piece of business logic: tenant records, knowledge
// ingestion and retrieval, chat generation, and account auth. This package
// only shapes requests and maps responses; nothing here second-guesses the
// backend's decisions.
//
// Errors from non-2xx responses surface as *APIError carrying the upstream
// "detail" message when present. Handlers use Detail to turn any error into a
// user-visible string with a fallback.
package backend
