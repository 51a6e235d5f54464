// Package player previews tracks without downloading them.
//
// An Engine plays one media URI at a time. MPV is the default engine: it
// starts an idle mpv process and drives it through its JSON IPC socket.
//
// Session owns the single playback session of the application. Playing a new
// track replaces the current one; Stop ends it.
//
//	session := player.NewSession(player.NewMPV("mpv"), 100, 2)
//	defer session.Close()
//
//	session.Play(track)
//	session.VolumeDown() // 98
//	session.Seek(2 * time.Second)
package player
