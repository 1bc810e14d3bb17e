// Package timezone keeps the process wide application location.
//
// Init is called once at startup with APP_TIMEZONE. Until then, and when the
// name cannot be loaded, every helper works in UTC:
//
//	timezone.Init("Asia/Kolkata")
//	now := timezone.Now()
//	joined, err := timezone.Parse("2006-01-02", "2024-06-01")
package timezone
