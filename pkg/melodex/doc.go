// Package melodex implements the server-side core of the Melodex
// platform: registering creative works as IP assets and managing the
// resulting records.
//
// The package exposes a Service interface that orchestrates the upload
// pipeline (content pinning, metadata construction, on-chain
// registration, persistence) and the record mutations the HTTP API
// surfaces (delete, visibility toggle, admin comments, notifications).
// Persistence and the external collaborators are abstracted behind the
// AssetStore, Pinner and Registrar interfaces; implementations live in
// the store, pinning and registration subpackages.
package melodex
