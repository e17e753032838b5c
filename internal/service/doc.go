// Package service contains the application-specific use cases. Each
// subpackage focuses on one domain area: practice orchestrates submissions,
// review queues, and recommendations; auth verifies the bearer tokens that
// identify learners.
//
// Services receive their dependencies through constructor injection and
// coordinate domain objects with the repositories defined in internal/store,
// applying transactional boundaries when an operation spans multiple
// repositories. They translate store-level errors into service-level
// sentinels so the API layer can map them to responses without knowing
// about persistence details.
package service
