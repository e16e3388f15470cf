// Package httpapi mounts the authentication flows on an http.ServeMux under
// /auth. It owns cookie handling and the JSON request/response shapes; all
// authentication decisions are delegated to authcore.Engine.
//
// The returned handler already carries the full gate chain: security headers,
// rate limiting, then CSRF (with the self-authenticating auth routes exempt).
package httpapi
