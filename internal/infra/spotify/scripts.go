package spotify

// Scripts sent to osascript. Each one catches its own scripting errors and
// reports through well-known markers so the Go side never has to parse
// AppleScript error text.
const (
	livenessScript = `try
	tell application "Spotify"
		if it is running then
			return "RUNNING"
		else
			return "NOT_RUNNING"
		end if
	end tell
on error
	return "NOT_FOUND"
end try`

	// Field order: track, artist, album, playing, position (s), duration (ms).
	trackScript = `try
	tell application "Spotify"
		if it is running then
			try
				set trackName to name of current track
				set artistName to artist of current track
				set albumName to album of current track
				set playingState to (player state is playing)
				set posSeconds to player position
				set durMillis to duration of current track
				return trackName & "|||" & artistName & "|||" & albumName & "|||" & (playingState as string) & "|||" & (posSeconds as string) & "|||" & (durMillis as string)
			on error
				return "SPOTIFY_NO_TRACK"
			end try
		else
			return "SPOTIFY_NOT_RUNNING"
		end if
	end tell
on error
	return "SPOTIFY_ERROR"
end try`

	commandScriptFormat = `try
	tell application "Spotify"
		%s
		return "SUCCESS"
	end tell
on error errMsg
	return "ERROR: " & errMsg
end try`
)

// Markers returned by the scripts above.
const (
	markerRunning    = "RUNNING"
	markerNotRunning = "NOT_RUNNING"
	markerNotFound   = "NOT_FOUND"
	markerNoTrack    = "SPOTIFY_NO_TRACK"
	markerAbsent     = "SPOTIFY_NOT_RUNNING"
	markerError      = "SPOTIFY_ERROR"
	markerSuccess    = "SUCCESS"

	fieldSeparator = "|||"
)
