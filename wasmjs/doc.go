// Package wasmjs exposes the bridge to JavaScript hosts.
//
// Install publishes a global Quill object. Every operation that can block
// returns a Promise and runs on its own goroutine, so control returns to the
// JS event loop while the engine works; the event loop never stalls on a
// fetch or a long scan.
//
//	const ctx = await Quill.create({ mode: "memory" });
//	await ctx.registerSource("nums", "mem://[1,2,3]");
//	const seq = await ctx.query("select * from nums");
//	for (let batch = await seq.next(); batch !== null; batch = await seq.next()) {
//	  console.log(batch); // [{value: 1}, {value: 2}, {value: 3}]
//	}
//	ctx.dispose();
//
// Rejected promises carry an Error whose kind property holds the boundary
// error taxonomy member, so hosts branch without parsing messages.
//
// Everything except this file is constrained to js && wasm builds.
package wasmjs
