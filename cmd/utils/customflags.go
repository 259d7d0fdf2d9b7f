package utils

// Flag is a cli option that is registered on cobra and bound to viper.
type Flag struct {
	Name         string
	Abbreviation string
	Value        interface{}
	Usage        string
}

func (f *Flag) GetName() string         { return f.Name }
func (f *Flag) GetAbbreviation() string { return f.Abbreviation }
func (f *Flag) GetUsage() string        { return f.Usage }
func (f *Flag) GetValue() interface{}   { return f.Value }
