// Package scheduler runs pipeline passes for multiple accounts on fixed
// intervals. Each account is an independent job with its own runner and
// datastore; an account whose queue drains leaves the rotation until the
// scheduler is restarted. There is no shared state between jobs beyond the
// registry itself.
package scheduler
