package callout

// Option configures a Client or Gateway.
type Option func(*options)

type options struct {
	defaultHeaders map[string]string
	patchPolicy    PatchPolicy
}

func newOptions(opts []Option) options {
	o := options{
		defaultHeaders: DefaultHeaders(),
		patchPolicy:    PatchOverride,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithDefaultHeaders replaces the header table used for requests that carry
// no headers of their own.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.defaultHeaders = copyHeaders(headers)
	}
}

// WithPatchPolicy selects how PATCH requests are sent.
func WithPatchPolicy(policy PatchPolicy) Option {
	return func(o *options) {
		o.patchPolicy = policy
	}
}
