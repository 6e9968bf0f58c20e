// Package harness runs scripted scenarios against a real Store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: events
//	description: "Upserts converge on one record per key"
//	tables:
//	  - name: events
//	    keys:
//	      - {name: user, type: integer}
//	      - {name: day, type: text}
//	steps:
//	  - op: upsert
//	    table: events
//	    keys: {user: 1, day: "2024-01-01"}
//	    value: {count: 3}
//	  - op: get
//	    table: events
//	    keys: {user: 1, day: "2024-01-01"}
//	    expect: {count: 3}
//	  - op: filter
//	    table: events
//	    keys: {user: 1}
//	    expect_rows:
//	      - {day: "2024-01-01", value: {count: 3}}
//	  - op: upsert
//	    table: events
//	    keys: {user: 1}
//	    value: 1
//	    expect_error: incomplete_key
//
// # Operations
//
//   - upsert: writes value under keys
//   - get: checks the stored value against expect, or absent: true
//   - filter: checks the rows returned for keys against expect_rows
//   - delete: removes the record under keys
//   - count: checks the number of records in table against expect
//   - dump: checks every stored record, tagged with "table", against
//     expect_rows
//
// Any step may set expect_error to the lower-case store error code it must
// fail with (unknown_table, incomplete_key, invalid_key, ...).
//
// # Isolation
//
// Each run opens a fresh SQLite file named by a random UUID inside the
// directory passed to Run, so runs never share state.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/events.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario, t.TempDir())
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
