// Package harness runs end-to-end scoring scenarios described in YAML.
//
// A scenario stages a complete extract drop in a throwaway directory, runs
// the full pipeline over it with a frozen clock and run token, and checks
// the outcome: declared expectations over the scored results, byte
// comparison of rendered artifacts against golden files, or both.
//
// # Scenario Format
//
//	name: baseline_two_districts
//	description: "What this scenario locks down"
//	run_token: 01960000-0000-7000-8000-000000000001
//	generated_at: 2025-06-01T08:00:00Z
//	datasets:
//	  enrolment: |
//	    date,state,district,pincode,age_0_5,age_5_17,age_18_greater
//	    30-03-2025,Bihar,Patna,800001,20,30,50
//	  demographic: |
//	    ...
//	  biometric: |
//	    ...
//	model: |          # optional inline CUE; empty selects the default model
//	  model: { ... }
//	expect:
//	  districts: 2
//	  top_district: Patna
//	  top_band: Medium
//	  bands: { Low: 1, Medium: 1 }
//	goldens:
//	  - executive_report.md
//	  - insights.json
//
// Leaving a kind out of datasets stages a missing extract. Pair that with
//
//	expect:
//	  error: E101
//
// to pin the load failure the run must produce; an error expectation
// cannot be combined with outcome expectations or goldens.
//
// # Determinism
//
// Every run is stamped with the scenario's fixed run token and clock
// reading, so rendered artifacts are byte-identical across runs and
// platforms. Golden files live under testdata/golden and regenerate with
//
//	go test ./internal/harness -update
//
// after an intentional output change.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/baseline_two_districts.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
