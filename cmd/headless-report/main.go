package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/Tilefire/internal/config"
	"github.com/Garsondee/Tilefire/internal/logging"
	"github.com/Garsondee/Tilefire/internal/sim"
)

type runStats struct {
	runIndex int
	seed     int64
	ticks    int

	firstSightTick  int
	firstShotTick   int
	firstHitTick    int
	firstKillTick   int
	playerDeathTick int
	completeTick    int

	playerShots  int
	enemyShots   int
	clicks       int
	reloads      int
	hitsLanded   int
	hitsTaken    int
	explosions   int
	kills        int
	enemiesStart int
	enemiesLeft  int
	intelTaken   int
	intelLeft    int
	playerHP     float64
	behaviors    map[string]struct{}
}

// scenario builds a fresh session for one seed.
type scenario func(seed int64) (*sim.TestSim, error)

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var name string
	var levelFile string
	var weaponsFile string
	var policy string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&name, "scenario", "arena", "scenario name (arena, duel)")
	flag.StringVar(&levelFile, "level", "", "level file for the arena scenario (built-in when empty)")
	flag.StringVar(&weaponsFile, "weapons", "", "weapon table (built-in when empty)")
	flag.StringVar(&policy, "policy", "turret", "player policy (turret, idle)")
	flag.BoolVar(&verbose, "v", false, "print the full event log of every run")
	flag.Parse()

	log := logging.New(os.Stderr, logging.Options{Level: "warn", Console: true})

	if runs <= 0 {
		log.Error().Msg("-runs must be > 0")
		os.Exit(2)
	}
	if ticks <= 0 {
		log.Error().Msg("-ticks must be > 0")
		os.Exit(2)
	}
	pilot, ok := policies[policy]
	if !ok {
		log.Error().Str("policy", policy).Msg("unsupported policy (supported: turret, idle)")
		os.Exit(2)
	}

	reg, err := config.LoadWeapons(weaponsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load weapons")
	}
	build, err := scenarioFor(name, levelFile, reg)
	if err != nil {
		log.Fatal().Err(err).Str("scenario", name).Msg("Failed to prepare scenario")
	}

	fmt.Printf("=== Headless Combat Report ===\n")
	fmt.Printf("scenario=%s policy=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		name, policy, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		ts, err := build(seed)
		if err != nil {
			log.Fatal().Err(err).Int64("seed", seed).Msg("Failed to build session")
		}
		stats := runScenario(i+1, seed, ts, pilot, ticks)
		all = append(all, stats)
		printRun(stats)
		if verbose {
			fmt.Print(ts.SimLog.Format(sim.Match{}))
			fmt.Println()
		}
	}
	printAggregate(all)
}

// scenarioFor resolves a scenario name to a session builder.
func scenarioFor(name, levelFile string, reg *sim.Registry) (scenario, error) {
	switch name {
	case "arena":
		lvl, err := config.LoadLevel(levelFile)
		if err != nil {
			return nil, err
		}
		return func(seed int64) (*sim.TestSim, error) {
			s, err := lvl.Build(reg, seed)
			if err != nil {
				return nil, err
			}
			return sim.WrapSim(s, false), nil
		}, nil
	case "duel":
		return func(seed int64) (*sim.TestSim, error) {
			return duel(seed), nil
		}, nil
	}
	return nil, fmt.Errorf("unsupported scenario %q (supported: arena, duel)", name)
}

// duel puts the player and a rifleman at opposite ends of an open hall with
// a pillar between them.
func duel(seed int64) *sim.TestSim {
	return sim.NewTestSim(
		sim.WithGridSize(20, 8),
		sim.WithSeed(seed),
		sim.WithWall(10, 3),
		sim.WithWall(10, 4),
		sim.WithPlayer(48, 144, "pistol", "shotgun"),
		sim.WithEnemy(592, 112, math.Pi, "rifle"),
	)
}

// pilot produces the player's input for the current tick.
type pilot func(s *sim.Sim) sim.Input

var policies = map[string]pilot{
	"idle":   func(*sim.Sim) sim.Input { return sim.Input{} },
	"turret": turret,
}

// turret holds position and shoots the nearest enemy it can see.
// Non-automatic weapons get a fresh trigger pull every other tick.
func turret(s *sim.Sim) sim.Input {
	in := sim.Input{Aim: s.Player.Rot}
	target, ok := nearestVisible(s)
	if !ok {
		return in
	}
	in.Aim = target.Sub(s.Player.Pos).Angle()

	wi := s.Player.Slots.ActiveWeapon()
	if wi == nil {
		in.Fire = true
		return in
	}
	if wi.CurClip == 0 && wi.Ammo > 0 {
		in.Reload = true
		return in
	}
	w := s.Weapons.Get(wi.Weapon)
	in.Fire = w.Mode.Kind == sim.Automatic || s.TickCount()%2 == 0
	return in
}

func nearestVisible(s *sim.Sim) (sim.Vec2, bool) {
	best := math.Inf(1)
	var pos sim.Vec2
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if e.Health.IsDead() {
			continue
		}
		if d := e.Pos.Dist(s.Player.Pos); d < best && s.Grid.LineOfSight(s.Player.Pos, e.Pos) {
			best, pos = d, e.Pos
		}
	}
	return pos, !math.IsInf(best, 1)
}

func runScenario(runIndex int, seed int64, ts *sim.TestSim, p pilot, ticks int) runStats {
	enemies := len(ts.Enemies)
	intel := ts.IntelRemaining()
	for i := 0; i < ticks; i++ {
		ts.Step(p(ts.Sim))
		if ts.Player.Health.IsDead() || (intel > 0 && ts.IntelRemaining() == 0) {
			break
		}
	}

	rs := collectStats(ts.SimLog.Entries())
	rs.runIndex = runIndex
	rs.seed = seed
	rs.ticks = ts.TickCount()
	rs.enemiesStart = enemies
	rs.enemiesLeft = len(ts.Enemies)
	rs.intelTaken = ts.IntelTaken()
	rs.intelLeft = ts.IntelRemaining()
	rs.playerHP = ts.Player.Health.HP
	return rs
}

// collectStats folds a run's log into counters and phase markers.
func collectStats(entries []sim.SimLogEntry) runStats {
	rs := runStats{
		firstSightTick:  firstTick(entries, "ai", "behavior", "last_known"),
		firstShotTick:   firstTick(entries, "weapon", "shot", ""),
		firstHitTick:    firstTick(entries, "combat", "hit", ""),
		firstKillTick:   firstActorTick(entries, "death", "E"),
		playerDeathTick: firstActorTick(entries, "death", "P"),
		completeTick:    firstTick(entries, "world", "level_complete", ""),
		behaviors:       map[string]struct{}{},
	}
	for _, e := range entries {
		player := e.Actor == "P"
		switch e.Key {
		case "shot":
			if player {
				rs.playerShots++
			} else {
				rs.enemyShots++
			}
		case "click":
			rs.clicks++
		case "reload":
			rs.reloads++
		case "hit":
			if player {
				rs.hitsTaken++
			} else {
				rs.hitsLanded++
			}
		case "explosion":
			rs.explosions++
		case "death":
			if !player {
				rs.kills++
			}
		case "behavior":
			if _, to, ok := strings.Cut(e.Value, "→ "); ok {
				state, _, _ := strings.Cut(to, "(")
				rs.behaviors[state] = struct{}{}
			}
		}
	}
	return rs
}

func firstTick(entries []sim.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

// firstActorTick is the first tick an entry with key was logged for an
// actor whose label starts with prefix.
func firstActorTick(entries []sim.SimLogEntry, key, prefix string) int {
	for _, e := range entries {
		if e.Key == key && strings.HasPrefix(e.Actor, prefix) {
			return e.Tick
		}
	}
	return -1
}

// outcome names how a run ended.
func outcome(rs runStats) string {
	switch {
	case rs.playerDeathTick >= 0:
		return "player_killed"
	case rs.completeTick >= 0:
		return "intel_secured"
	case rs.enemiesStart > 0 && rs.enemiesLeft == 0:
		return "area_cleared"
	case rs.firstShotTick < 0:
		return "no_contact"
	default:
		return "timeout"
	}
}

// accuracy is hits landed per player shot, capped at 1 since blasts and
// stray enemy rounds also land hits.
func accuracy(rs runStats) float64 {
	if rs.playerShots == 0 {
		return 0
	}
	return math.Min(1, float64(rs.hitsLanded)/float64(rs.playerShots))
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s ticks=%d player_hp=%.1f\n", outcome(rs), rs.ticks, rs.playerHP)
	fmt.Printf("phase_markers: first_sight=%s first_shot=%s first_hit=%s first_kill=%s player_death=%s complete=%s\n",
		tickString(rs.firstSightTick), tickString(rs.firstShotTick), tickString(rs.firstHitTick),
		tickString(rs.firstKillTick), tickString(rs.playerDeathTick), tickString(rs.completeTick))
	fmt.Printf("gunfire: player_shots=%d enemy_shots=%d clicks=%d reloads=%d explosions=%d\n",
		rs.playerShots, rs.enemyShots, rs.clicks, rs.reloads, rs.explosions)
	fmt.Printf("damage: hits_landed=%d hits_taken=%d accuracy=%.0f%% kills=%d/%d\n",
		rs.hitsLanded, rs.hitsTaken, accuracy(rs)*100, rs.kills, rs.enemiesStart)
	fmt.Printf("objective: intel_taken=%d intel_left=%d\n", rs.intelTaken, rs.intelLeft)
	fmt.Printf("behaviors_seen=[%s]\n\n", joinSet(rs.behaviors))
}

func printAggregate(all []runStats) {
	totalPlayerShots := 0
	totalEnemyShots := 0
	totalHitsLanded := 0
	totalHitsTaken := 0
	totalKills := 0
	totalEnemies := 0
	totalIntel := 0

	sightTicks := make([]int, 0, len(all))
	shotTicks := make([]int, 0, len(all))
	killTicks := make([]int, 0, len(all))
	deathTicks := make([]int, 0, len(all))
	outcomes := map[string]int{}
	behaviors := map[string]struct{}{}

	for _, rs := range all {
		totalPlayerShots += rs.playerShots
		totalEnemyShots += rs.enemyShots
		totalHitsLanded += rs.hitsLanded
		totalHitsTaken += rs.hitsTaken
		totalKills += rs.kills
		totalEnemies += rs.enemiesStart
		totalIntel += rs.intelTaken
		if rs.firstSightTick >= 0 {
			sightTicks = append(sightTicks, rs.firstSightTick)
		}
		if rs.firstShotTick >= 0 {
			shotTicks = append(shotTicks, rs.firstShotTick)
		}
		if rs.firstKillTick >= 0 {
			killTicks = append(killTicks, rs.firstKillTick)
		}
		if rs.playerDeathTick >= 0 {
			deathTicks = append(deathTicks, rs.playerDeathTick)
		}
		outcomes[outcome(rs)]++
		for b := range rs.behaviors {
			behaviors[b] = struct{}{}
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d survival=%.0f%%\n", n, pct(n-len(deathTicks), n))
	fmt.Printf("avg_per_run: player_shots=%.1f enemy_shots=%.1f hits_landed=%.1f hits_taken=%.1f intel=%.1f\n",
		avg(totalPlayerShots, n), avg(totalEnemyShots, n), avg(totalHitsLanded, n), avg(totalHitsTaken, n), avg(totalIntel, n))
	fmt.Printf("kill_rate=%.0f%% (%d/%d)\n", pct(totalKills, totalEnemies), totalKills, totalEnemies)
	fmt.Printf("phase_marker_avg_ticks: first_sight=%s first_shot=%s first_kill=%s player_death=%s\n",
		avgTickString(sightTicks), avgTickString(shotTicks), avgTickString(killTicks), avgTickString(deathTicks))

	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Print("outcomes:")
	for _, k := range keys {
		fmt.Printf(" %s=%d", k, outcomes[k])
	}
	fmt.Println()
	fmt.Printf("behaviors_seen=[%s]\n", joinSet(behaviors))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func pct(part, whole int) float64 {
	return avg(part, whole) * 100
}

func tickString(t int) string {
	if t < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", t)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
