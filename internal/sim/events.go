package sim

import "strconv"

// EventKind identifies a notable occurrence for the audio/decal layers.
type EventKind int

const (
	EventShot          EventKind = iota // a weapon fired
	EventClick                          // trigger pulled on an empty clip
	EventReload                         // reload started
	EventWeaponReady                    // cooldown or reload finished
	EventSwitch                         // active slot changed
	EventThrow                          // grenade thrown
	EventHit                            // bullet, knife or blast damaged an actor
	EventDeath                          // actor died this tick
	EventExplosion                      // grenade detonated
	EventWallImpact                     // bullet struck a wall
	EventGrenadeBounce                  // grenade bounced off a wall or actor
	EventPickup                         // weapon picked up
	EventDrop                           // weapon dropped into the world
	EventIntel                          // intel collected
	EventLevelComplete                  // last intel collected
)

func (k EventKind) String() string {
	switch k {
	case EventShot:
		return "shot"
	case EventClick:
		return "click"
	case EventReload:
		return "reload"
	case EventWeaponReady:
		return "weapon_ready"
	case EventSwitch:
		return "switch"
	case EventThrow:
		return "throw"
	case EventHit:
		return "hit"
	case EventDeath:
		return "death"
	case EventExplosion:
		return "explosion"
	case EventWallImpact:
		return "wall_impact"
	case EventGrenadeBounce:
		return "grenade_bounce"
	case EventPickup:
		return "pickup"
	case EventDrop:
		return "drop"
	case EventIntel:
		return "intel"
	case EventLevelComplete:
		return "level_complete"
	default:
		return "unknown"
	}
}

// ActorKind distinguishes the player from enemies in events and hits.
type ActorKind int

const (
	ActorNone ActorKind = iota
	ActorPlayer
	ActorEnemy
)

// ActorRef names an actor. Index is the enemy's position in Sim.Enemies at
// the time the event was raised; removals happen after all events of a tick.
type ActorRef struct {
	Kind  ActorKind
	Index int
}

// Label returns a short name like "P" or "E3".
func (r ActorRef) Label() string {
	switch r.Kind {
	case ActorPlayer:
		return "P"
	case ActorEnemy:
		return "E" + strconv.Itoa(r.Index)
	default:
		return "--"
	}
}

// Event is one discrete occurrence raised during a tick.
type Event struct {
	Kind   EventKind
	Pos    Vec2
	Normal [2]int // wall normal for WallImpact
	Weapon WeaponID
	Actor  ActorRef // who caused it or, for Hit/Death, who suffered it
}

// Events is an append-only per-tick queue cleared when drained.
type Events struct {
	list []Event
}

func (q *Events) emit(e Event) {
	q.list = append(q.list, e)
}

// List returns the queued events without clearing them.
func (q *Events) List() []Event { return q.list }

// Drain returns the queued events and empties the queue.
func (q *Events) Drain() []Event {
	out := q.list
	q.list = nil
	return out
}
