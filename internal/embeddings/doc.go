// Package embeddings turns text into unit-length float32 vectors.
//
// Three providers sit behind the Provider interface: FastEmbed (local ONNX,
// requires cgo), an OpenAI-compatible HTTP endpoint through langchaingo, and a
// deterministic hash embedder used offline and in tests. NewProvider selects
// one at runtime and wraps it with OpenTelemetry instrumentation.
package embeddings
