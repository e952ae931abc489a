package http

import (
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

var (
	statusStyles = map[int]lipgloss.Style{
		2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#98C379")),
		3: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#61AFEF")),
		4: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5C07B")),
		5: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E06C75")),
	}
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ABB2BF"))
)

// responseHandler implements ResponseHandler interface
type responseHandler struct {
	logger         zerolog.Logger
	out            Output
	verbose        bool
	includeHeaders bool
}

// NewResponseHandler creates a handler printing to stdout and stderr.
func NewResponseHandler(logger zerolog.Logger, verbose, includeHeaders bool) ResponseHandler {
	return NewResponseHandlerWithOutput(logger, Output{Stdout: os.Stdout, Stderr: os.Stderr}, verbose, includeHeaders)
}

// NewResponseHandlerWithOutput creates a handler printing to out.
func NewResponseHandlerWithOutput(logger zerolog.Logger, out Output, verbose, includeHeaders bool) ResponseHandler {
	return &responseHandler{
		logger:         logger.With().Str("component", "response_handler").Logger(),
		out:            out,
		verbose:        verbose,
		includeHeaders: includeHeaders,
	}
}

// HandleResponse prints the body, preceded by the status line and headers on
// stdout with -i, or by a request/response trace on stderr with -v.
func (h *responseHandler) HandleResponse(req *http.Request, resp *callout.Response) error {
	if h.verbose && req != nil {
		h.showRequestDetails(req)
	}

	switch {
	case h.verbose:
		h.showResponseDetails(resp)
	case h.includeHeaders:
		h.showResponseHeaders(resp)
	}

	fmt.Fprint(h.out.Stdout, resp.Body)

	h.logger.Debug().
		Int("status", resp.StatusCode).
		Int("body_length", len(resp.Body)).
		Bool("verbose", h.verbose).
		Bool("include_headers", h.includeHeaders).
		Msg("response displayed")

	return nil
}

func (h *responseHandler) showRequestDetails(req *http.Request) {
	fmt.Fprintf(h.out.Stderr, "> %s %s\n", req.Method, req.URL.String())
	fmt.Fprintf(h.out.Stderr, "> Host: %s\n", req.URL.Host)
	for _, key := range sortedKeys(req.Header) {
		for _, value := range req.Header[key] {
			fmt.Fprintf(h.out.Stderr, "> %s: %s\n", key, value)
		}
	}
	fmt.Fprintln(h.out.Stderr, ">")
}

func (h *responseHandler) showResponseDetails(resp *callout.Response) {
	fmt.Fprintf(h.out.Stderr, "< %s %s\n", proto(resp), StatusLine(resp))
	for _, key := range sortedKeys(resp.Header) {
		for _, value := range resp.Header[key] {
			fmt.Fprintf(h.out.Stderr, "< %s\n", dimStyle.Render(key+": "+value))
		}
	}
	fmt.Fprintln(h.out.Stderr, "<")
}

func (h *responseHandler) showResponseHeaders(resp *callout.Response) {
	fmt.Fprintf(h.out.Stdout, "%s %s\n", proto(resp), resp.Status)
	for _, key := range sortedKeys(resp.Header) {
		for _, value := range resp.Header[key] {
			fmt.Fprintf(h.out.Stdout, "%s: %s\n", key, value)
		}
	}
	fmt.Fprintln(h.out.Stdout)
}

// StatusLine renders the status colored by its class.
func StatusLine(resp *callout.Response) string {
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if style, ok := statusStyles[resp.StatusCode/100]; ok {
		return style.Render(status)
	}
	return status
}

func proto(resp *callout.Response) string {
	if resp.Proto == "" {
		return "HTTP/1.1"
	}
	return resp.Proto
}

func sortedKeys(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
