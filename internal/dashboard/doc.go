// Package dashboard turns the forecast and alert relations into render
// instructions. Everything except Service is a pure function of its inputs,
// so a page can be built and checked without an HTTP server or a template.
package dashboard
