// Package core defines the shared language of the Lexi system.
//
// This package contains:
//   - Domain entities (Phoneme, Language, Protolanguage, LanguageGroup)
//   - The sealed Entity capability shared by both language kinds
//   - Sentinel and typed errors used across layers
//   - The versioned snapshot codec (Encode, Decode)
//
// The Golden Rule: pkg/core imports ONLY pkg/phone, uuid, semver and stdlib.
// All other packages depend on core, not the reverse.
package core
