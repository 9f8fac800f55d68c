// Package httpapi exposes events and leads over REST with gin.
//
// Routes, relative to the configured base path (default /api):
//
//	GET  /events                     list, filtered by city, search, status, startDate, endDate
//	GET  /events/:id                 one event
//	GET  /events/:id/calendar.ics    iCalendar entry for a dated event
//	POST /events/lead                capture a lead, returns {redirectUrl}
//	GET  /events/leads               leads, newest first (operator)
//	POST /events/import/:id          mark an event imported (operator)
//	POST /events/scrape              run reconciliation now (operator)
//
// /healthz and /metrics are served at the root. Operator routes require a
// bearer token only when a JWT secret is configured. Errors are returned as
// {"message": "..."}.
package httpapi
