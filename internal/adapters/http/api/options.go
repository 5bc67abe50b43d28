package api

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRateLimit enables per-client rate limiting on the business routes.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.rateLimiter = NewRateLimiter(rps, burst)
		}
	}
}
