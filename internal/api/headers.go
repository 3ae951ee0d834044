package api

import "net/http"

const userAgent = "transit/1.0 (+https://www.assemblyai.com/docs)"

// baseHeaders are sent with every request.
var baseHeaders = map[string]string{
	"accept":     "application/json",
	"user-agent": userAgent,
}

// setHeaders applies the common headers and the API key to req.
func setHeaders(req *http.Request, apiKey string) {
	for k, v := range baseHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("authorization", apiKey)
}
