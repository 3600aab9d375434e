/*
Package server exposes stored schedules as a read-only iCalendar feed that
calendar applications can subscribe to.

# Basic Usage

	store := memory.New()
	srv, err := server.New(store, "/feed")
	if err != nil {
		log.Fatal(err)
	}
	http.Handle("/feed/", srv)
	http.ListenAndServe(":8080", nil)

# URL Scheme

  - /            - VCALENDAR with every schedule. The optional start and end
    query parameters (yyyy-mm-dd) keep schedules occurring in that range.
  - /<id>.ics    - a single schedule, with ETag and If-None-Match support
  - /<id>.xml    - the same schedule as an xCal (RFC 6321) document

Every other method is answered with 405 Method Not Allowed.

# Custom Storage Backend

Any storage.Storage works; only GetSchedule and ListSchedules are called.
*/
package server
