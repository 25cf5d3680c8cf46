package melodex

// NormalizeRecords applies the storage migration pass. Records written
// before the multi-asset release have no type tag and use the legacy
// audioUrl/imageUrl field names; they read back as music assets with
// the generic URL fields populated.
func NormalizeRecords(records []AssetRecord) []AssetRecord {
	for i := range records {
		if records[i].Type == "" {
			records[i].Type = AssetTypeMusic
		}
		if records[i].MediaURL == "" {
			records[i].MediaURL = records[i].LegacyAudioURL
		}
		if records[i].CoverURL == "" {
			records[i].CoverURL = records[i].LegacyImageURL
		}
	}
	return records
}
