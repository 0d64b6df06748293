package handler

import "net/http"

// ServeHTTP adapts Handle to net/http, for the local server and Vercel-style
// functions
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h.Handle(r.Context(), Request{Method: r.Method, Header: r.Header})
	if err := WriteResponse(w, resp); err != nil {
		h.logger.WithError(err).Warn("Failed to write response body")
	}
}

// WriteResponse copies resp onto w
func WriteResponse(w http.ResponseWriter, resp Response) error {
	for name, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) == 0 {
		return nil
	}
	_, err := w.Write(resp.Body)
	return err
}
