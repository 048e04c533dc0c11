package api

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the REST resources under /api on r.
func RegisterRoutes(r chi.Router, tasks *TaskHandler, jobs *JobHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", tasks.CreateTask)
			r.Get("/", tasks.GetAllTasks)
			r.Get("/{id}", tasks.GetTask)
			r.Put("/{id}", tasks.UpdateTask)
			r.Patch("/{id}", tasks.PartialUpdateTask)
			r.Delete("/{id}", tasks.DeleteTask)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", jobs.CreateJob)
			r.Get("/", jobs.GetAllJobs)
			r.Get("/{id}", jobs.GetJob)
			r.Put("/{id}", jobs.UpdateJob)
			r.Patch("/{id}", jobs.PartialUpdateJob)
			r.Delete("/{id}", jobs.DeleteJob)
		})

		r.Get("/_search/tasks", tasks.SearchTasks)
		r.Get("/_search/jobs", jobs.SearchJobs)
	})
}
