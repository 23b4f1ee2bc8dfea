package cmd

import (
	"flag"

	"github.com/etnz/book/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors predicts flag values by flag name, other flags accept anything.
var flagPredictors = map[string]complete.Predictor{
	"i":      predict.Files("*.csv"),
	"input":  predict.Files("*.csv"),
	"o":      predict.Files("*.csv"),
	"output": predict.Files("*.csv"),
	"source": predict.Set(sources),
	"cache":  predict.Set{"none", "day", "week", "month", "quarter", "year"},
}

// argPredictors predicts the positional arguments of a subcommand, the book by default.
var argPredictors = map[string]complete.Predictor{
	"get-quotes": predict.Something,
	"topic":      complete.PredictFunc(predictTopics),
}

func predictTopics(string) []string {
	topics, _ := docs.GetAllTopics()
	return append(topics, "readme")
}

// Completion returns the shell completion of bk, built from the flags of the subcommands.
// Running `COMP_INSTALL=1 bk` installs it.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub: map[string]*complete.Command{
			"help":     {Args: predict.Set(commandNames())},
			"flags":    {Args: predict.Set(commandNames())},
			"commands": {Flags: map[string]complete.Predictor{}},
		},
		Flags: flagsOf(flag.CommandLine),
	}
	for _, c := range Commands {
		f := flag.NewFlagSet(c.Command.Name(), flag.ContinueOnError)
		c.Command.SetFlags(f)
		args, ok := argPredictors[c.Command.Name()]
		if !ok {
			args = predict.Files("*")
		}
		root.Sub[c.Command.Name()] = &complete.Command{Flags: flagsOf(f), Args: args}
	}
	return root
}

func commandNames() []string {
	var names []string
	for _, c := range Commands {
		names = append(names, c.Command.Name())
	}
	return names
}

// flagsOf predicts nothing after boolean flags.
func flagsOf(f *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[fl.Name] = predict.Nothing
			return
		}
		if p, ok := flagPredictors[fl.Name]; ok {
			flags[fl.Name] = p
			return
		}
		flags[fl.Name] = predict.Something
	})
	return flags
}
