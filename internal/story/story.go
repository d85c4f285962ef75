package story

// Story is a read-only, navigable snapshot of scenes sorted by order.
// Navigation saturates at both ends; there is no wraparound.
type Story struct {
	scenes []Scene
	cursor int
}

// New snapshots scenes. Later changes to the caller's slice or its layers
// do not affect the story.
func New(scenes []Scene) *Story {
	snapshot := make([]Scene, len(scenes))
	for i, s := range scenes {
		snapshot[i] = s.Clone()
	}
	SortScenes(snapshot)
	return &Story{scenes: snapshot}
}

func (s *Story) Len() int {
	return len(s.scenes)
}

func (s *Story) Cursor() int {
	return s.cursor
}

// Current returns the scene under the cursor. ok is false for an empty story.
func (s *Story) Current() (scene Scene, ok bool) {
	if len(s.scenes) == 0 {
		return Scene{}, false
	}
	return s.scenes[s.cursor], true
}

// Next advances the cursor by one, staying put on the last scene.
func (s *Story) Next() (Scene, bool) {
	if s.cursor < len(s.scenes)-1 {
		s.cursor++
	}
	return s.Current()
}

// Previous moves the cursor back by one, staying put on the first scene.
func (s *Story) Previous() (Scene, bool) {
	if s.cursor > 0 {
		s.cursor--
	}
	return s.Current()
}

// Scenes returns a copy of the story's scenes in playback order.
func (s *Story) Scenes() []Scene {
	out := make([]Scene, len(s.scenes))
	for i, sc := range s.scenes {
		out[i] = sc.Clone()
	}
	return out
}
