package appstore

import "fmt"

// Environment is the App Store server environment a payload was produced in.
type Environment string

const (
	EnvironmentSandbox      Environment = "Sandbox"
	EnvironmentProduction   Environment = "Production"
	EnvironmentXcode        Environment = "Xcode"
	EnvironmentLocalTesting Environment = "LocalTesting"
)

// ParseEnvironment converts a configuration string to an Environment.
// Only Sandbox and Production are valid verifier configurations - Xcode and
// LocalTesting only ever appear inside decoded payloads.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvironmentSandbox, EnvironmentProduction:
		return Environment(s), nil
	default:
		return "", fmt.Errorf("invalid environment %q: must be Sandbox or Production", s)
	}
}
