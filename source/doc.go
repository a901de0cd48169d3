// Package source resolves registered locators into table providers.
//
// A locator names where bytes come from; format options say how they decode:
//
//	mem://[1,2,3]                inline JSON, no I/O
//	https://host/events.csv      fetched with net/http (the Fetch API on js)
//	file:///data/events.json     native builds only
//
// Resolution is lazy. Registering a source validates the locator shape and
// options; bytes are fetched and decoded on the first scan and cached on the
// provider until it is replaced or released, so a re-registered name cleanly
// drops the old data.
//
// Transport failures surface as io errors, malformed content as source
// errors; the two are distinct members of the boundary taxonomy.
package source
