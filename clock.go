package loadlimiter

import "time"

// timeNow is overridden in tests.
var timeNow = time.Now
