package transcode

// Package transcode implements the bulk image pipeline behind exports:
// fetch, decode, center-crop to a square, resample to the output size, and
// re-encode as JPEG. Work runs in fixed-size concurrent batches; a failed
// item is dropped from the output, never aborting the pipeline.
