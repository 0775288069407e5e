package entity

import "github.com/xptrack-lab/backend/pkg/enum"

// Metric identifies one trackable statistic of a player.
type Metric string

// MetricKind tags how a metric is measured.
type MetricKind string

var (
	KindExperience = enum.New(MetricKind("experience"), "experience")
	KindKillCount  = enum.New(MetricKind("killcount"), "killcount")
	KindScore      = enum.New(MetricKind("score"), "score")
	KindVirtual    = enum.New(MetricKind("virtual"), "virtual")
)

const (
	// UnrankedValue is the sentinel the external source reports for a
	// metric the player has no rank on. It is distinct from zero.
	UnrankedValue int64 = -1

	// MaxSkillExperience is the experience cap of a single skill.
	MaxSkillExperience int64 = 200_000_000

	// MaxSkillLevel is the highest attainable skill level.
	MaxSkillLevel = 99

	// VirtualMetricScale converts fractional virtual-hours values into the
	// integral columns of records and leaderboards.
	VirtualMetricScale int64 = 10_000
)

var (
	MetricOverall      = enum.New(Metric("overall"), "overall")
	MetricAttack       = enum.New(Metric("attack"), "attack")
	MetricDefence      = enum.New(Metric("defence"), "defence")
	MetricStrength     = enum.New(Metric("strength"), "strength")
	MetricHitpoints    = enum.New(Metric("hitpoints"), "hitpoints")
	MetricRanged       = enum.New(Metric("ranged"), "ranged")
	MetricPrayer       = enum.New(Metric("prayer"), "prayer")
	MetricMagic        = enum.New(Metric("magic"), "magic")
	MetricCooking      = enum.New(Metric("cooking"), "cooking")
	MetricWoodcutting  = enum.New(Metric("woodcutting"), "woodcutting")
	MetricFletching    = enum.New(Metric("fletching"), "fletching")
	MetricFishing      = enum.New(Metric("fishing"), "fishing")
	MetricFiremaking   = enum.New(Metric("firemaking"), "firemaking")
	MetricCrafting     = enum.New(Metric("crafting"), "crafting")
	MetricSmithing     = enum.New(Metric("smithing"), "smithing")
	MetricMining       = enum.New(Metric("mining"), "mining")
	MetricHerblore     = enum.New(Metric("herblore"), "herblore")
	MetricAgility      = enum.New(Metric("agility"), "agility")
	MetricThieving     = enum.New(Metric("thieving"), "thieving")
	MetricSlayer       = enum.New(Metric("slayer"), "slayer")
	MetricFarming      = enum.New(Metric("farming"), "farming")
	MetricRunecrafting = enum.New(Metric("runecrafting"), "runecrafting")
	MetricHunter       = enum.New(Metric("hunter"), "hunter")
	MetricConstruction = enum.New(Metric("construction"), "construction")

	MetricAbyssalSire      = enum.New(Metric("abyssal_sire"), "abyssal_sire")
	MetricBarrowsChests    = enum.New(Metric("barrows_chests"), "barrows_chests")
	MetricCallisto         = enum.New(Metric("callisto"), "callisto")
	MetricCerberus         = enum.New(Metric("cerberus"), "cerberus")
	MetricChambersOfXeric  = enum.New(Metric("chambers_of_xeric"), "chambers_of_xeric")
	MetricCommanderZilyana = enum.New(Metric("commander_zilyana"), "commander_zilyana")
	MetricCorporealBeast   = enum.New(Metric("corporeal_beast"), "corporeal_beast")
	MetricGeneralGraardor  = enum.New(Metric("general_graardor"), "general_graardor")
	MetricGiantMole        = enum.New(Metric("giant_mole"), "giant_mole")
	MetricKraken           = enum.New(Metric("kraken"), "kraken")
	MetricKreeArra         = enum.New(Metric("kree_arra"), "kree_arra")
	MetricKrilTsutsaroth   = enum.New(Metric("kril_tsutsaroth"), "kril_tsutsaroth")
	MetricVorkath          = enum.New(Metric("vorkath"), "vorkath")
	MetricWintertodt       = enum.New(Metric("wintertodt"), "wintertodt")
	MetricZulrah           = enum.New(Metric("zulrah"), "zulrah")

	MetricLeaguePoints      = enum.New(Metric("league_points"), "league_points")
	MetricBountyHunter      = enum.New(Metric("bounty_hunter"), "bounty_hunter")
	MetricClueScrollsAll    = enum.New(Metric("clue_scrolls_all"), "clue_scrolls_all")
	MetricLastManStanding   = enum.New(Metric("last_man_standing"), "last_man_standing")
	MetricSoulWarsZeal      = enum.New(Metric("soul_wars_zeal"), "soul_wars_zeal")

	MetricEHP = enum.New(Metric("ehp"), "ehp")
	MetricEHB = enum.New(Metric("ehb"), "ehb")
)

// SkillMetrics is the catalog of skills in hiscores order. Overall comes
// first by convention.
var SkillMetrics = []Metric{
	MetricOverall, MetricAttack, MetricDefence, MetricStrength,
	MetricHitpoints, MetricRanged, MetricPrayer, MetricMagic, MetricCooking,
	MetricWoodcutting, MetricFletching, MetricFishing, MetricFiremaking,
	MetricCrafting, MetricSmithing, MetricMining, MetricHerblore,
	MetricAgility, MetricThieving, MetricSlayer, MetricFarming,
	MetricRunecrafting, MetricHunter, MetricConstruction,
}

var BossMetrics = []Metric{
	MetricAbyssalSire, MetricBarrowsChests, MetricCallisto, MetricCerberus,
	MetricChambersOfXeric, MetricCommanderZilyana, MetricCorporealBeast,
	MetricGeneralGraardor, MetricGiantMole, MetricKraken, MetricKreeArra,
	MetricKrilTsutsaroth, MetricVorkath, MetricWintertodt, MetricZulrah,
}

var ActivityMetrics = []Metric{
	MetricLeaguePoints, MetricBountyHunter, MetricClueScrollsAll,
	MetricLastManStanding, MetricSoulWarsZeal,
}

var VirtualMetrics = []Metric{MetricEHP, MetricEHB}

// CombatSkillMetrics are the skills that make up the combat level.
var CombatSkillMetrics = []Metric{
	MetricAttack, MetricDefence, MetricStrength, MetricHitpoints,
	MetricRanged, MetricPrayer, MetricMagic,
}

// AllMetrics lists every measured metric in catalog order. Virtual metrics
// are excluded because they are derived, never fetched.
func AllMetrics() []Metric {
	all := make([]Metric, 0, len(SkillMetrics)+len(BossMetrics)+len(ActivityMetrics))
	all = append(all, SkillMetrics...)
	all = append(all, BossMetrics...)
	all = append(all, ActivityMetrics...)
	return all
}

var metricKinds = map[Metric]MetricKind{}

func init() {
	for _, m := range SkillMetrics {
		metricKinds[m] = KindExperience
	}
	for _, m := range BossMetrics {
		metricKinds[m] = KindKillCount
	}
	for _, m := range ActivityMetrics {
		metricKinds[m] = KindScore
	}
	for _, m := range VirtualMetrics {
		metricKinds[m] = KindVirtual
	}
}

// KindOf returns the measurement kind of a metric. Every cataloged metric
// has exactly one kind.
func KindOf(m Metric) (MetricKind, bool) {
	kind, ok := metricKinds[m]
	return kind, ok
}

func IsSkill(m Metric) bool {
	kind, ok := metricKinds[m]
	return ok && kind == KindExperience
}

func IsBoss(m Metric) bool {
	kind, ok := metricKinds[m]
	return ok && kind == KindKillCount
}

func IsVirtual(m Metric) bool {
	kind, ok := metricKinds[m]
	return ok && kind == KindVirtual
}
