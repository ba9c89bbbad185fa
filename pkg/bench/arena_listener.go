package bench

// Distributes the match events between multiple listeners, in order
type ArenaListener struct {
	listeners []ListenerLike
}

func NewArenaListener(listeners ...ListenerLike) *ArenaListener {
	al := &ArenaListener{
		listeners: make([]ListenerLike, 0, len(listeners)),
	}
	for _, l := range listeners {
		if l != nil {
			al.listeners = append(al.listeners, l)
		}
	}
	return al
}

func (al *ArenaListener) Add(l ListenerLike) {
	if l != nil {
		al.listeners = append(al.listeners, l)
	}
}

func (al *ArenaListener) OnGameStart(stats ListenerStats) {
	for _, l := range al.listeners {
		l.OnGameStart(stats)
	}
}

func (al *ArenaListener) OnMoveMade(stats ListenerStats) {
	for _, l := range al.listeners {
		l.OnMoveMade(stats)
	}
}

func (al *ArenaListener) OnFinishedGame(stats ListenerStats) {
	for _, l := range al.listeners {
		l.OnFinishedGame(stats)
	}
}

func (al *ArenaListener) OnFinishedMatch(result MatchResult) {
	for _, l := range al.listeners {
		l.OnFinishedMatch(result)
	}
}
