package source

import "github.com/desertthunder/amx/internal/models"

var samplePlaylist = []models.Track{
	{Title: "Bohemian Rhapsody", Artist: "Queen", Album: "A Night at the Opera"},
	{Title: "Hotel California", Artist: "Eagles", Album: "Hotel California"},
	{Title: "Stairway to Heaven", Artist: "Led Zeppelin", Album: "Led Zeppelin IV"},
	{Title: "Imagine", Artist: "John Lennon", Album: "Imagine"},
	{Title: "Billie Jean", Artist: "Michael Jackson", Album: "Thriller"},
	{Title: "Sweet Child O' Mine", Artist: "Guns N' Roses", Album: "Appetite for Destruction"},
	{Title: "Smells Like Teen Spirit", Artist: "Nirvana", Album: "Nevermind"},
	{Title: "Like a Rolling Stone", Artist: "Bob Dylan", Album: "Highway 61 Revisited"},
	{Title: "Hey Jude", Artist: "The Beatles", Album: "The Beatles 1967-1970"},
	{Title: "Purple Rain", Artist: "Prince", Album: "Purple Rain"},
}

// Sample returns a copy of the built-in playlist, truncated to limit when limit > 0.
func (i *Importer) Sample(limit int) []models.Track {
	return Truncate(samplePlaylist, limit)
}

// Truncate returns a copy of tracks holding at most limit entries. A limit of zero or less keeps every track.
func Truncate(tracks []models.Track, limit int) []models.Track {
	n := len(tracks)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Track, n)
	copy(out, tracks[:n])
	return out
}
