package transcription

import "sort"

// mergeOutputs combines the diarization and transcription outputs for one
// run. When diarization produced segments they become the base, since they
// carry speaker labels, and the transcription contributes language and
// duration. Otherwise the transcription stands alone.
func mergeOutputs(diar Diarization, tr Transcription) (segments []Segment, speakers []string, hasDiarization bool) {
	if len(diar.Segments) == 0 {
		return tr.Segments, nil, false
	}
	speakers = diar.Speakers
	if len(speakers) == 0 {
		speakers = distinctSpeakers(diar.Segments)
	}
	return diar.Segments, speakers, true
}

func distinctSpeakers(segments []Segment) []string {
	seen := make(map[string]struct{})
	var speakers []string
	for _, seg := range segments {
		if seg.Speaker == "" {
			continue
		}
		if _, ok := seen[seg.Speaker]; ok {
			continue
		}
		seen[seg.Speaker] = struct{}{}
		speakers = append(speakers, seg.Speaker)
	}
	sort.Strings(speakers)
	return speakers
}
