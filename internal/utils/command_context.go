package utils

import "context"

type invocationContextKey struct{}

// Invocation records how the running command was configured. Commands read it to report where
// settings and the registry came from.
type Invocation struct {
	ConfigurationFile   string
	ConfigurationLayers []string
	RegistryPath        string
}

// WithInvocation returns a child of parentContext carrying invocation.
func WithInvocation(parentContext context.Context, invocation Invocation) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, invocationContextKey{}, invocation)
}

// InvocationFrom returns the Invocation stored by WithInvocation.
func InvocationFrom(executionContext context.Context) (Invocation, bool) {
	if executionContext == nil {
		return Invocation{}, false
	}
	invocation, present := executionContext.Value(invocationContextKey{}).(Invocation)
	return invocation, present
}
