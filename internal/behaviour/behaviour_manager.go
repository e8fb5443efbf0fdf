// Package behaviour holds the input drivers that disturb the water: rain,
// wind gusts and sound responders. Drivers run through a BehaviourManager;
// Update is called every frame and UpdateFixed once per simulation tick.
package behaviour

type PlayerBehaviour interface {
	Start()
	Update()
	UpdateFixed()
}

type BehaviourWrapper struct {
	Behaviour PlayerBehaviour
	started   bool
}

type BehaviourManager struct {
	behaviours []BehaviourWrapper
}

func NewBehaviourManager() *BehaviourManager {
	return &BehaviourManager{}
}

func (m *BehaviourManager) Add(behaviour PlayerBehaviour) {
	m.behaviours = append(m.behaviours, BehaviourWrapper{Behaviour: behaviour, started: false})
}

// Clear removes all behaviours from the manager
func (m *BehaviourManager) Clear() {
	m.behaviours = m.behaviours[:0]
}

// Len is the number of managed behaviours.
func (m *BehaviourManager) Len() int {
	return len(m.behaviours)
}

func (m *BehaviourManager) start(i int) {
	if !m.behaviours[i].started {
		m.behaviours[i].Behaviour.Start()
		m.behaviours[i].started = true
	}
}

// UpdateAll runs the per-frame update of every behaviour.
func (m *BehaviourManager) UpdateAll() {
	for i := range m.behaviours {
		m.start(i)
		m.behaviours[i].Behaviour.Update()
	}
}

// UpdateAllFixed runs the per-tick update of every behaviour.
func (m *BehaviourManager) UpdateAllFixed() {
	for i := range m.behaviours {
		m.start(i)
		m.behaviours[i].Behaviour.UpdateFixed()
	}
}
