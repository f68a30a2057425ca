package utils

import (
	"net/http"
	"sync"

	_ "github.com/akolanti/CourseChatAPI/cmd/api/docs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"
)

var once sync.Once
var router *chi.Mux

type RouterClient struct {
	Router *chi.Mux
}

// GetRouter returns the process-wide chi mux with the swagger and
// prometheus endpoints already mounted. Route registration for the API
// itself happens in the server package.
func GetRouter() RouterClient {
	once.Do(func() {
		router = chi.NewRouter()
		mountSwagger(router)
		router.Handle("/metrics", promhttp.Handler())
	})
	return RouterClient{Router: router}
}

func mountSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

func GetNewUUID() string {
	return uuid.New().String()
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}
