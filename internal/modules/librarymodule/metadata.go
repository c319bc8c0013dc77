package librarymodule

import (
	"time"

	"github.com/dhowden/tag"
)

// MetadataFromTag flattens parsed audio tags into FileMetadata. The
// caller supplies the file identity fields, since tag readers only see
// the stream, not the file.
func MetadataFromTag(m tag.Metadata, fileName string, fileSize int64, fileHash string) FileMetadata {
	songNumber, _ := m.Track()
	discNumber, _ := m.Disc()

	artist := m.AlbumArtist()
	if artist == "" {
		artist = m.Artist()
	}

	var releaseDate time.Time
	if year := m.Year(); year > 0 {
		releaseDate = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	meta := FileMetadata{
		ArtistName:     artist,
		ArtistSortName: rawString(m, "soaa", "TSO2", "soar", "TSOP"),
		AlbumName:      m.Album(),
		AlbumSortName:  rawString(m, "soal", "TSOA"),
		ReleaseDate:    releaseDate,
		DiscNumber:     discNumber,
		SongNumber:     songNumber,
		Title:          m.Title(),
		TitleSort:      rawString(m, "sonm", "TSOT"),
		FileName:       fileName,
		FileSize:       fileSize,
		FileHash:       fileHash,
		ContentType:    contentTypeFor(m.FileType()),
		Lyrics:         m.Lyrics(),
	}
	if genre := m.Genre(); genre != "" {
		meta.Genres = []string{genre}
	}
	return meta
}

// rawString scans the raw tag frames for the first present key. Sort
// names live in format-specific frames the common accessors don't cover.
func rawString(m tag.Metadata, keys ...string) string {
	raw := m.Raw()
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func contentTypeFor(ft tag.FileType) string {
	switch ft {
	case tag.MP3:
		return "audio/mpeg"
	case tag.FLAC:
		return "audio/flac"
	case tag.OGG:
		return "audio/ogg"
	case tag.M4A, tag.M4B, tag.M4P, tag.ALAC:
		return "audio/mp4"
	case tag.DSF:
		return "audio/dsf"
	default:
		return "application/octet-stream"
	}
}
