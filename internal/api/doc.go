// Package api exposes the split service over HTTP JSON. Session creation and
// joining are public; everything else requires a participant token issued at
// join time. Live changes stream to clients as server-sent events.
package api
