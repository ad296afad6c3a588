// Package api hosts the HTTP server, middleware, and REST handlers for
// operator access. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/verify for claim verification batches.
//   - GET /v1/stats/{caches,providers,checkpoints} for runtime stats.
package api
