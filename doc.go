// Package loadlimiter implements a sliding-window load limiter: an
// in-process primitive that decides, for each incoming unit of work,
// whether admitting it would keep the aggregate load submitted over a
// rolling time window below a configured ceiling.
//
// Unlike a token bucket, there is no refill rate and no burst bucket:
// admission is governed purely by the sum of load recorded in a ring
// of time-aligned buckets covering the trailing Period. Rejections may
// inject synthetic "penalty" load into the window to throttle bursts,
// and may report a time-to-availability estimate so callers can back
// off. Several limiters can be combined into a composite that admits
// only when every member would admit, committed atomically via a
// local two-phase commit.
//
// The limiter is not a distributed rate limiter (state is
// process-local) and does not provide fairness beyond arrival order.
package loadlimiter
