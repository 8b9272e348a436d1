package password

// commonPasswords is the blocklist checked after normalization. Loaded once
// at process start; never mutated at runtime.
var commonPasswords = map[string]struct{}{
	"password":   {},
	"qwerty":     {},
	"abc123":     {},
	"letmein":    {},
	"welcome":    {},
	"monkey":     {},
	"dragon":     {},
	"master":     {},
	"shadow":     {},
	"sunshine":   {},
	"princess":   {},
	"starwars":   {},
	"football":   {},
	"baseball":   {},
	"trustno1":   {},
	"iloveyou":   {},
	"admin":      {},
	"login":      {},
	"superman":   {},
	"batman":     {},
	"whatever":   {},
	"freedom":    {},
	"secret":     {},
	"ninja":      {},
	"mustang":    {},
	"michael":    {},
	"jordan":     {},
	"harley":     {},
	"ranger":     {},
	"hunter":     {},
	"buster":     {},
	"soccer":     {},
	"hockey":     {},
	"killer":     {},
	"george":     {},
	"charlie":    {},
	"andrew":     {},
	"thomas":     {},
	"jessica":    {},
	"daniel":     {},
	"hannah":     {},
	"maggie":     {},
	"summer":     {},
	"ashley":     {},
	"nicole":     {},
	"chelsea":    {},
	"biteme":     {},
	"matrix":     {},
	"access":     {},
	"yankees":    {},
	"dallas":     {},
	"austin":     {},
	"thunder":    {},
	"taylor":     {},
	"matthew":    {},
	"corvette":   {},
	"martin":     {},
	"heather":    {},
	"ginger":     {},
	"hammer":     {},
	"silver":     {},
	"joshua":     {},
	"pepper":     {},
	"mercedes":   {},
	"cookie":     {},
	"chicken":    {},
	"maverick":   {},
	"diamond":    {},
	"jackson":    {},
	"banana":     {},
	"computer":   {},
	"amanda":     {},
	"cowboy":     {},
	"eagles":     {},
	"internet":   {},
	"tigers":     {},
	"marina":     {},
	"flower":     {},
	"orange":     {},
	"mickey":     {},
	"bailey":     {},
	"snoopy":     {},
	"samantha":   {},
	"steelers":   {},
	"scooter":    {},
	"please":     {},
	"liverpool":  {},
	"blink182":   {},
	"peanut":     {},
	"lakers":     {},
	"rabbit":     {},
	"monster":    {},
	"winter":     {},
	"compaq":     {},
	"guitar":     {},
	"purple":     {},
	"angels":     {},
	"gateway":    {},
	"smokey":     {},
	"fuckyou":    {},
	"test":       {},
	"changeme":   {},
	"root":       {},
	"toor":       {},
	"pass":       {},
	"qwertyuiop": {},
	"asdfghjkl":  {},
	"zxcvbnm":    {},
}

// keyboardRuns are known layout walks checked by substring containment,
// forwards and reversed.
var keyboardRuns = []string{
	"qwerty",
	"qwertz",
	"azerty",
	"asdf",
	"asdfgh",
	"zxcv",
	"zxcvbn",
	"qazwsx",
	"1qaz2wsx",
	"1234",
	"12345",
	"123456",
	"0987",
	"09876",
	"!@#$",
	"!@#$%",
	"poiuy",
	"lkjhg",
	"mnbvc",
}

// leetTable maps leetspeak substitutions back to letters before the
// common-password lookup.
var leetTable = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'@': 'a',
	'$': 's',
	'!': 'i',
}
