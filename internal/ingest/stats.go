package ingest

import "unicode/utf8"

// Stats summarizes a batch of chunks before ingestion.
type Stats struct {
	TotalChunks   int            `json:"total_chunks"`
	TotalChars    int            `json:"total_chars"`
	MeanChunkSize float64        `json:"mean_chunk_size"`
	UniqueSources int            `json:"unique_sources"`
	ByFileType    map[string]int `json:"by_file_type"`
}

// ComputeStats aggregates chunk counts, character totals, and per-type
// breakdowns for a batch.
func ComputeStats(chunks []Chunk) Stats {
	stats := Stats{ByFileType: make(map[string]int)}
	sources := make(map[string]struct{})

	for _, c := range chunks {
		stats.TotalChunks++
		stats.TotalChars += utf8.RuneCountInString(c.Content)
		stats.ByFileType[c.Metadata["file_type"]]++
		if src := c.Metadata["source"]; src != "" {
			sources[src] = struct{}{}
		}
	}

	stats.UniqueSources = len(sources)
	if stats.TotalChunks > 0 {
		stats.MeanChunkSize = float64(stats.TotalChars) / float64(stats.TotalChunks)
	}
	return stats
}
