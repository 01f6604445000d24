package main

import (
	"fmt"
	"os"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/pmove"
	"github.com/oomph-ac/pmove/settings"
	"github.com/oomph-ac/pmove/simulation"
	"github.com/oomph-ac/pmove/world"
	"github.com/sirupsen/logrus"
)

// step is one part of the scripted run.
type step struct {
	name   string
	ticks  int
	cmd    pmove.Command
	angles mgl32.Vec3
}

// The following program runs a scripted course: a runner crosses the stairs, jumps and mantles onto the ledge
// while a climber goes up the ladder. The run is replayed afterwards to check that it is deterministic.
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ./bin <settings_file> <level_file>")
		return
	}
	settingsPath, levelPath := os.Args[1], os.Args[2]

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := settings.SaveDefault(settingsPath); err != nil {
			panic(err)
		}
	}
	s, err := settings.Load(settingsPath)
	if err != nil {
		panic(err)
	}

	log := s.Logger()
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:     false,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	level, err := world.LoadLevel(levelPath)
	if err != nil {
		panic(err)
	}
	defer level.Release()

	r := simulation.NewRunner(level.Build(log), s.Config(), 16, log)
	runner, err := r.Add("runner", level.Spawn, pmove.Options{
		OnMantle: func(from, to pmove.MantlePhase) {
			log.WithField("character", "runner").Infof("mantle %v -> %v", from, to)
		},
	})
	if err != nil {
		panic(err)
	}
	climber, err := r.Add("climber", mgl32.Vec3{-200, 0, level.Spawn.Z()}, pmove.Options{})
	if err != nil {
		panic(err)
	}
	s.Apply(runner.Player)
	s.Apply(climber.Player)

	run := []step{
		{name: "run", ticks: 60, cmd: pmove.Command{ForwardMove: 127}},
		{name: "jump", ticks: 1, cmd: pmove.Command{ForwardMove: 127, UpMove: 127}},
		{name: "land", ticks: 40, cmd: pmove.Command{ForwardMove: 127}},
		{name: "approach", ticks: 60, cmd: pmove.Command{ForwardMove: 127}},
		{name: "mantle", ticks: 220, cmd: pmove.Command{ForwardMove: 127, UpMove: 127}},
		{name: "rest", ticks: 30},
	}
	climb := step{cmd: pmove.Command{ForwardMove: 127}, angles: mgl32.Vec3{-45, 180, 0}}

	for _, st := range run {
		log.WithFields(logrus.Fields{"character": "runner", "step": st.name}).Info("starting step")
		runner.SetInput(st.cmd, st.angles)
		climber.SetInput(climb.cmd, climb.angles)
		for i := 0; i < st.ticks; i++ {
			res := r.Tick()
			rr, cr := res["runner"], res["climber"]
			log.WithFields(logrus.Fields{
				"character":  "runner",
				"locomotion": rr.Locomotion,
				"origin":     rr.Origin,
				"phase":      rr.Phase,
			}).Debug("tick")
			log.WithFields(logrus.Fields{
				"character":  "climber",
				"locomotion": cr.Locomotion,
				"origin":     cr.Origin,
				"ladder":     cr.Ladder,
			}).Debug("tick")
		}
	}
	for _, c := range []*simulation.Character{runner, climber} {
		mean, stdDev, max := c.SpeedStats()
		log.WithFields(logrus.Fields{
			"character":  c.Name,
			"origin":     c.Player.Origin(),
			"mean_speed": mean,
			"std_dev":    stdDev,
			"max_speed":  max,
		}).Info("finished course")
	}

	log.WithField("entities", r.PushedEntities()).Info("pushed entities")

	v := simulation.NewVerifier(log)
	mismatches, errs := v.Verify(r.Recording())
	log.WithFields(logrus.Fields{"ticks": r.Ticks(), "mismatches": len(mismatches), "errors": len(errs)}).Info("replay verified")
	if len(mismatches) != 0 || len(errs) != 0 {
		os.Exit(1)
	}
}
