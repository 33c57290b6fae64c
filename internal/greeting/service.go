// Package greeting implements the greeting service, its HTTP controller and
// the server that exposes it.
package greeting

// DefaultGreeting is the body served at the root path.
const DefaultGreeting = "Hello World!"

// Service produces the greeting returned by the controller.
type Service interface {
	Hello() string
}

type service struct{}

// NewService returns the Service that always answers DefaultGreeting.
func NewService() Service {
	return service{}
}

// Hello returns DefaultGreeting.
func (service) Hello() string {
	return DefaultGreeting
}
