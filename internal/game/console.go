package game

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/l1jgo/cultivation/internal/combat"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
)

const helpText = `命令:
  status               查看状态
  npcs                 查看周围的人物
  speed <x>            设置游戏速度 (0.1-10)
  pause                暂停/继续
  go <scene>           前往某地
  choose <n>           奇遇中做出选择
  fight <n>            与第 n 个人物战斗
  attack <n>           攻击第 n 个人物一次
  act <attack|special|heal|defend>  战斗中出手
  cast <ability> [n]   施展法术，可指定目标
  use <item>           使用物品
  equip <slot> <item>  装备物品
  unequip <slot>       卸下装备
  breakthrough         尝试突破境界
  join <sect>          拜入门派
  learn <technique>    学习功法或门派武学
  chronicle [n]        查看最近 n 条大事记
  strategy <name>      战斗策略 aggressive/defensive/balanced/technical
  auto on|off          半自动战斗
  intervene on|off     关键时刻干预
  quit                 退出`

// Console turns text commands into bus requests and resolver calls. Exec
// must run on the game loop goroutine; reading lines can happen anywhere.
type Console struct {
	g   *Game
	out io.Writer
}

func NewConsole(g *Game, out io.Writer) *Console {
	return &Console{g: g, out: out}
}

// Attach prints every bus message to the console output.
func (c *Console) Attach() {
	event.On(c.g.Bus, event.TopicMessage, func(m event.Message) error {
		fmt.Fprintln(c.out, m.Text)
		return nil
	})
}

// Exec runs one command line. quit is true when the user asked to leave.
// Bad input is reported on the console; the error is reserved for bus
// handler failures.
func (c *Console) Exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	g := c.g
	player := g.Player()

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		fmt.Fprintln(c.out, helpText)
	case "status":
		c.printStatus()
	case "npcs":
		c.printNPCs()
	case "speed":
		v, ok := c.floatArg(args, 0)
		if !ok {
			return false, nil
		}
		return false, g.Bus.Emit(event.TopicSpeedChange, event.SpeedChange{Speed: v})
	case "pause":
		return false, g.Bus.Emit(event.TopicPauseToggle, event.PauseToggle{})
	case "go":
		if len(args) == 0 {
			c.usage("go <scene>")
			return false, nil
		}
		return false, g.Travel(args[0])
	case "choose":
		n, ok := c.intArg(args, 0)
		if !ok {
			return false, nil
		}
		if _, active := g.Encounters.Active(player); !active {
			fmt.Fprintln(c.out, "当前没有奇遇")
			return false, nil
		}
		return false, g.Bus.Emit(event.TopicEncounterChoice, event.EncounterChoice{Entity: player, Index: n - 1})
	case "fight":
		target, ok := c.npc(args, 0)
		if !ok {
			return false, nil
		}
		if _, err := g.Combat.StartCombat(player, target, combat.StartOptions{}); err != nil {
			fmt.Fprintf(c.out, "无法战斗: %v\n", err)
		}
	case "attack":
		target, ok := c.npc(args, 0)
		if !ok {
			return false, nil
		}
		return false, g.Bus.Emit(event.TopicRequestAttack, event.RequestAttack{Attacker: player, Target: target})
	case "act":
		return false, c.act(args)
	case "cast":
		if len(args) == 0 {
			c.usage("cast <ability> [n]")
			return false, nil
		}
		var target ecs.EntityID
		if len(args) > 1 {
			var ok bool
			if target, ok = c.npc(args, 1); !ok {
				return false, nil
			}
		}
		return false, g.Bus.Emit(event.TopicRequestCastAbility, event.RequestCastAbility{Caster: player, AbilityID: args[0], Target: target})
	case "use":
		if len(args) == 0 {
			c.usage("use <item>")
			return false, nil
		}
		return false, g.Bus.Emit(event.TopicRequestUseItem, event.RequestUseItem{Entity: player, ItemID: args[0]})
	case "equip":
		if len(args) < 2 {
			c.usage("equip <slot> <item>")
			return false, nil
		}
		return false, g.Bus.Emit(event.TopicRequestEquip, event.RequestEquip{Entity: player, Slot: args[0], ItemID: args[1]})
	case "unequip":
		if len(args) == 0 {
			c.usage("unequip <slot>")
			return false, nil
		}
		return false, g.Bus.Emit(event.TopicRequestEquip, event.RequestEquip{Entity: player, Slot: args[0]})
	case "breakthrough":
		return false, g.Bus.Emit(event.TopicRequestBreakthrough, event.RequestBreakthrough{Entity: player})
	case "join":
		if len(args) == 0 {
			c.usage("join <sect>")
			return false, nil
		}
		return false, g.Bus.Emit(event.TopicRequestJoinSect, event.RequestJoinSect{Entity: player, SectID: args[0]})
	case "learn":
		if len(args) == 0 {
			c.usage("learn <technique>")
			return false, nil
		}
		return false, g.Bus.Emit(event.TopicRequestLearn, event.RequestLearn{Entity: player, SkillID: args[0]})
	case "chronicle":
		n := defaultChronicle
		if len(args) > 0 {
			var ok bool
			if n, ok = c.intArg(args, 0); !ok {
				return false, nil
			}
		}
		c.printChronicle(n)
	case "strategy":
		if len(args) == 0 {
			c.usage("strategy <name>")
			return false, nil
		}
		return false, g.Combat.SetStrategy(combat.Strategy(args[0]))
	case "auto", "intervene":
		on, ok := c.onOff(args)
		if !ok {
			return false, nil
		}
		if cmd == "auto" {
			return false, g.Combat.SetAuto(on)
		}
		return false, g.Combat.SetIntervention(on)
	default:
		fmt.Fprintf(c.out, "未知命令: %s (输入 help 查看命令)\n", cmd)
	}
	return false, nil
}

func (c *Console) act(args []string) error {
	if len(args) == 0 {
		c.usage("act <attack|special|heal|defend>")
		return nil
	}
	action, err := combat.ParseAction(args[0])
	if err != nil {
		fmt.Fprintln(c.out, err)
		return nil
	}
	id, ok := c.g.Combat.AwaitingFor(c.g.Player())
	if !ok {
		fmt.Fprintln(c.out, "没有等待出手的战斗")
		return nil
	}
	return c.g.Combat.Intervene(id, action)
}

const defaultChronicle = 10

func (c *Console) printChronicle(n int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	entries, err := c.g.Chronicle(ctx, max(n, 1))
	if err != nil {
		fmt.Fprintf(c.out, "无法读取大事记: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "大事记为空")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(c.out, "第%d天 [%s] %s %s\n", e.Day, e.Kind, e.Name, e.Detail)
	}
}

func (c *Console) printStatus() {
	st := c.g.Status()
	t := st.Time
	state := "运行中"
	switch {
	case t.Paused:
		state = "暂停"
	case !t.Running:
		state = "停止"
	}
	fmt.Fprintf(c.out, "第 %d 年 %d 月 · 第 %d 天  速度 %.1fx  %s\n", t.Year, t.Month, t.Day, t.Speed, state)
	fmt.Fprintf(c.out, "%s  境界 %s  等级 %d (经验 %d)  位于 %s\n", st.Name, st.Realm, st.Level, st.Experience, st.Scene)
	fmt.Fprintf(c.out, "气血 %d/%d  法力 %d/%d  年龄 %d/%d\n", st.Health, st.MaxHealth, st.Mana, st.MaxMana, st.Age, st.Lifespan)
	fmt.Fprintf(c.out, "战绩 %d 胜 %d 负 %d 平  胜率 %.1f%%\n", st.Combat.Wins, st.Combat.Losses, st.Combat.Draws, st.Combat.WinRate())
	if sect, ok := c.g.Data.Sect(st.Sect); ok {
		fmt.Fprintf(c.out, "门派 %s\n", sect.Name)
	}
	if st.Dead {
		fmt.Fprintln(c.out, "（已身故）")
	}
	if st.Encounter != "" {
		fmt.Fprintf(c.out, "奇遇进行中: %s\n", st.Encounter)
	}
	if len(st.Awaiting) > 0 {
		fmt.Fprintln(c.out, "战斗等待出手 (act ...)")
	}
}

func (c *Console) printNPCs() {
	npcs := c.g.World.NPCs()
	if len(npcs) == 0 {
		fmt.Fprintln(c.out, "四下无人")
		return
	}
	for i, id := range npcs {
		level := 0
		if attr, ok := c.g.World.Attributes.Get(id); ok {
			level = attr.Level
		}
		fmt.Fprintf(c.out, "%d. %s (等级 %d)\n", i+1, c.g.World.Name(id), level)
	}
}

// npc resolves the 1-based NPC number at args[i].
func (c *Console) npc(args []string, i int) (ecs.EntityID, bool) {
	n, ok := c.intArg(args, i)
	if !ok {
		return 0, false
	}
	npcs := c.g.World.NPCs()
	if n < 1 || n > len(npcs) {
		fmt.Fprintf(c.out, "没有第 %d 个人物\n", n)
		return 0, false
	}
	return npcs[n-1], true
}

func (c *Console) intArg(args []string, i int) (int, bool) {
	if i >= len(args) {
		c.usage("需要一个数字")
		return 0, false
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		fmt.Fprintf(c.out, "不是数字: %s\n", args[i])
		return 0, false
	}
	return n, true
}

func (c *Console) floatArg(args []string, i int) (float64, bool) {
	if i >= len(args) {
		c.usage("需要一个数字")
		return 0, false
	}
	v, err := strconv.ParseFloat(args[i], 64)
	if err != nil {
		fmt.Fprintf(c.out, "不是数字: %s\n", args[i])
		return 0, false
	}
	return v, true
}

func (c *Console) onOff(args []string) (bool, bool) {
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "on":
			return true, true
		case "off":
			return false, true
		}
	}
	c.usage("on|off")
	return false, false
}

func (c *Console) usage(s string) {
	fmt.Fprintf(c.out, "用法: %s\n", s)
}
