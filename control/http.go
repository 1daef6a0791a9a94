package control

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/golang/glog"
)

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// Handler serves graphql over HTTP. GET takes the query in the "query" URL
// parameter; POST takes a JSON body with "query" and optional "variables".
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		switch r.Method {
		case http.MethodGet:
			req.Query = r.URL.Query().Get("query")
		case http.MethodPost:
			body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if err := json.Unmarshal(body, &req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		glog.V(2).Infof("graphql: %s", req.Query)
		res := s.Query(req.Query, req.Variables)
		for _, err := range res.Errors {
			glog.Warningf("graphql error: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			glog.Warningf("write graphql response: %v", err)
		}
	})
}
