package email

// disposableDomains are throwaway-mail providers. Addresses on these domains
// are rejected outright. Loaded once at process start; never mutated.
var disposableDomains = map[string]struct{}{
	"mailinator.com":        {},
	"guerrillamail.com":     {},
	"guerrillamail.net":     {},
	"guerrillamail.org":     {},
	"sharklasers.com":       {},
	"10minutemail.com":      {},
	"10minutemail.net":      {},
	"temp-mail.org":         {},
	"tempmail.com":          {},
	"tempmail.net":          {},
	"tempmailo.com":         {},
	"throwawaymail.com":     {},
	"trashmail.com":         {},
	"trashmail.de":          {},
	"yopmail.com":           {},
	"yopmail.fr":            {},
	"yopmail.net":           {},
	"getnada.com":           {},
	"dispostable.com":       {},
	"maildrop.cc":           {},
	"mailnesia.com":         {},
	"mintemail.com":         {},
	"mohmal.com":            {},
	"spamgourmet.com":       {},
	"mytemp.email":          {},
	"fakeinbox.com":         {},
	"mailcatch.com":         {},
	"inboxkitten.com":       {},
	"tempinbox.com":         {},
	"burnermail.io":         {},
	"discard.email":         {},
	"emailondeck.com":       {},
	"spambox.us":            {},
	"33mail.com":            {},
	"anonbox.net":           {},
	"deadaddress.com":       {},
	"mail-temp.com":         {},
	"tempail.com":           {},
	"moakt.com":             {},
	"tmpmail.org":           {},
	"tmpmail.net":           {},
	"temporary-mail.net":    {},
	"mail7.io":             {},
	"harakirimail.com":      {},
	"spam4.me":              {},
	"grr.la":                {},
	"pokemail.net":          {},
	"spamherelots.com":      {},
	"mailexpire.com":        {},
	"meltmail.com":          {},
	"armyspy.com":           {},
	"cuvox.de":              {},
	"dayrep.com":            {},
	"einrot.com":            {},
	"fleckens.hu":           {},
	"gustr.com":             {},
	"jourrapide.com":        {},
	"rhyta.com":             {},
	"superrito.com":         {},
	"teleworm.us":           {},
}

// roleAccounts are local-parts that indicate a shared mailbox rather than a
// person. Warning only; never blocks.
var roleAccounts = map[string]struct{}{
	"admin":        {},
	"administrator": {},
	"support":      {},
	"help":         {},
	"info":         {},
	"contact":      {},
	"sales":        {},
	"marketing":    {},
	"billing":      {},
	"accounts":     {},
	"abuse":        {},
	"security":     {},
	"noreply":      {},
	"no-reply":     {},
	"donotreply":   {},
	"postmaster":   {},
	"hostmaster":   {},
	"webmaster":    {},
	"root":         {},
	"mail":         {},
	"office":       {},
	"hr":           {},
	"jobs":         {},
	"careers":      {},
	"team":         {},
	"hello":        {},
	"service":      {},
	"orders":       {},
	"newsletter":   {},
	"notifications": {},
}

// domainTypos maps common misspellings of major providers to the intended
// domain. Warning plus suggestion; never blocks.
var domainTypos = map[string]string{
	"gmial.com":      "gmail.com",
	"gmal.com":       "gmail.com",
	"gmail.co":       "gmail.com",
	"gmail.cm":       "gmail.com",
	"gmaill.com":     "gmail.com",
	"gamil.com":      "gmail.com",
	"gnail.com":      "gmail.com",
	"gmali.com":      "gmail.com",
	"googlemail.co":  "googlemail.com",
	"hotmial.com":    "hotmail.com",
	"hotmal.com":     "hotmail.com",
	"hotmail.co":     "hotmail.com",
	"hotmail.cm":     "hotmail.com",
	"hotmaill.com":   "hotmail.com",
	"hormail.com":    "hotmail.com",
	"outlok.com":     "outlook.com",
	"outloook.com":   "outlook.com",
	"outlook.co":     "outlook.com",
	"outlook.cm":     "outlook.com",
	"yaho.com":       "yahoo.com",
	"yahooo.com":     "yahoo.com",
	"yahoo.co":       "yahoo.com",
	"yahoo.cm":       "yahoo.com",
	"yhoo.com":       "yahoo.com",
	"icloud.co":      "icloud.com",
	"icloud.cm":      "icloud.com",
	"iclod.com":      "icloud.com",
	"protonmail.co":  "protonmail.com",
	"protonmial.com": "protonmail.com",
	"aol.co":         "aol.com",
	"comcast.nett":   "comcast.net",
	"live.cm":        "live.com",
	"live.co":        "live.com",
}
