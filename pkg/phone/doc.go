// Package phone models a single speech sound and renders it to Branner
// notation, the ASCII romanization Lexi hands to IPA transliteration.
//
// This package contains:
//   - Places of articulation (PlosivePlace, FricativePlace)
//   - Manner attachments (Attachment, Attachments)
//   - The tagged Phone variant and its Branner renderer
//   - A compact textual spec format (Parse, Phone.Spec)
//   - JSON and YAML codecs for the tagged variant
//
// phone imports only the standard library and yaml.v3.
package phone
