package api

import (
	"github.com/JaimeStill/veranstalter/internal/graphql"
	"github.com/JaimeStill/veranstalter/internal/veranstalter"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Veranstalter veranstalter.System
	GraphQL      *graphql.Handler
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	sys := veranstalter.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Mailer,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Veranstalter: sys,
		GraphQL:      graphql.NewHandler(sys, runtime.Logger, runtime.Pagination),
	}
}
