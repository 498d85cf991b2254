package config

const (
	// MaxTitleLength is the maximum length for post titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxTitleLength = 255

	// MaxEditNoteLength is the maximum length for one edit-history note.
	MaxEditNoteLength = 500

	// MaxDescriptionLength is the maximum length for key point descriptions
	// and unit display names.
	MaxDescriptionLength = 500
)
