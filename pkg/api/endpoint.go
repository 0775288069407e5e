package api

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"

	"github.com/xptrack-lab/backend/pkg/errorx"
	"github.com/xptrack-lab/backend/pkg/xcontext"
)

// Endpoint maps one request/response pair onto a mux path. Request fields
// bind from the query string on GET and from the JSON body otherwise,
// using their json tags.
type Endpoint[Request, Response any] struct {
	Method string
	Path   string
	Handle func(ctx context.Context, req *Request) (*Response, error)
}

// Register installs the endpoint on the mux. The given ctx carries the
// server-scoped values (configs, logger, database) into every handler
// call, while request cancellation still follows the client connection.
func (e *Endpoint[Request, Response]) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc(e.Path, func(w http.ResponseWriter, r *http.Request) {
		if e.Method != "" && r.Method != e.Method {
			writeJSON(ctx, w, http.StatusMethodNotAllowed,
				newErrorResponse(errorx.New(errorx.BadRequest, "Method not allowed")))
			return
		}

		var req Request
		if err := e.bind(r, &req); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot bind request of %s: %v", e.Path, err)
			writeJSON(ctx, w, http.StatusBadRequest,
				newErrorResponse(errorx.New(errorx.BadRequest, "Malformed request")))
			return
		}

		resp, err := e.Handle(ctx, &req)
		if err != nil {
			writeJSON(ctx, w, http.StatusOK, newErrorResponse(err))
			return
		}

		writeJSON(ctx, w, http.StatusOK, newResponse(resp))
	})
}

func (e *Endpoint[Request, Response]) bind(r *http.Request, req any) error {
	switch e.Method {
	case http.MethodGet, http.MethodDelete:
		return bindQuery(r, req)
	default:
		return json.NewDecoder(r.Body).Decode(req)
	}
}

func bindQuery(r *http.Request, req any) error {
	v := reflect.ValueOf(req).Elem()
	for i := 0; i < v.NumField(); i++ {
		name := v.Type().Field(i).Tag.Get("json")
		value := r.URL.Query().Get(name)
		if value == "" {
			continue
		}

		switch field := v.Field(i); field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(n)
		}
	}

	return nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}
