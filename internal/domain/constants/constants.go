// Package constants holds string identifiers shared by configuration and wiring.
package constants

const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub providers.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Document store providers.
const (
	DatabaseProviderFirestore = "firestore"
	DatabaseProviderMemory    = "memory"
)

// Identity providers.
const (
	AuthProviderFirebase = "firebase"
	AuthProviderJWT      = "jwt"
)
