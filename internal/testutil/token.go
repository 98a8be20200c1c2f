package testutil

// RunToken is the fixed run token tests feed pipeline.NewFixedGenerator.
// UUIDv7-shaped so it round-trips through everything that parses tokens,
// but obviously synthetic in any artifact a human reads.
const RunToken = "01960000-0000-7000-8000-000000000001"
