package mailmerge

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which handlers the module mounts.
// Each one is optional and only mounted if provided.
type RouterOptions struct {
	API Mountable
}

// Router creates the mailmerge module router.
//
// Example:
//
//	api := mailmerge.NewAPI(svc, handler.NewErrorHandler(log))
//
//	r := chi.NewRouter()
//	r.Mount("/", mailmerge.Router(mailmerge.RouterOptions{API: api}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.API != nil {
		r.Mount("/api/mailmerge", opts.API.Handle())
	}

	return r
}
