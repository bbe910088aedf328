package complaints

import "strings"

// Language of a bundled sample complaint
type Language string

const (
	LanguageEnglish   Language = "en"
	LanguageMalayalam Language = "ml"
)

var examples = map[Language]string{
	LanguageEnglish:   "To the Municipal Corporation,\n\nI am writing to report a recurring issue of improper garbage disposal and overflowing public bins in the Park Street area, specifically near the community center. For the past three months, the waste collection has been infrequent, leading to piles of garbage on the sidewalks. This is causing a severe public health hazard, attracting pests, and creating an unbearable stench.\n\nDespite multiple calls to the local sanitation office (Ref: #2354, #2411), no permanent solution has been provided. The bins are too small for the neighborhood's needs and are not emptied on schedule. According to municipal by-law 7.4 concerning public sanitation, waste must be collected at least three times a week in residential zones. This is clearly not happening.\n\nWe request immediate action to clear the existing garbage, install larger bins, and ensure a regular collection schedule is strictly followed.",
	LanguageMalayalam: "മുനിസിപ്പൽ കോർപ്പറേഷന്,\n\nപാർക്ക് സ്ട്രീറ്റ് ഏരിയയിലെ, പ്രത്യേകിച്ച് കമ്മ്യൂണിറ്റി സെന്ററിനടുത്തുള്ള, മാലിന്യം തെറ്റായി നിക്ഷേപിക്കുന്നതും പൊതു മാലിന്യപ്പെട്ടികൾ കവിഞ്ഞൊഴുകുന്നതുമായ സ്ഥിരം പ്രശ്നം റിപ്പോർട്ട് ചെയ്യാൻ ഞാൻ ആഗ്രഹിക്കുന്നു. കഴിഞ്ഞ മൂന്ന് മാസമായി, മാലിന്യ ശേഖരണം വളരെ കുറവാണ്, ഇത് നടപ്പാതകളിൽ മാലിന്യങ്ങൾ കുന്നുകൂടാൻ കാരണമാകുന്നു. ഇത് ഗുരുതരമായ ഒരു പൊതുജനാരോഗ്യ ഭീഷണിയാണ്, കീടങ്ങളെ ആകർഷിക്കുകയും അസഹനീയമായ ദുർഗന്ധം സൃഷ്ടിക്കുകയും ചെയ്യുന്നു.\n\nപ്രാദേശിക ശുചീകരണ ഓഫീസിലേക്ക് പലതവണ വിളിച്ചിട്ടും (റഫറൻസ്: #2354, #2411), ഒരു ശാശ്വത പരിഹാരവും ലഭിച്ചിട്ടില്ല. ഈ പ്രദേശത്തെ ആവശ്യങ്ങൾക്ക് മാലിന്യപ്പെട്ടികൾ വളരെ ചെറുതാണ്, അവ കൃത്യസമയത്ത് കാലിയാക്കുന്നുമില്ല. പൊതു ശുചീകരണവുമായി ബന്ധപ്പെട്ട മുനിസിപ്പൽ നിയമത്തിലെ 7.4 വകുപ്പ് പ്രകാരം, ജനവാസ മേഖലകളിൽ ആഴ്ചയിൽ മൂന്ന് തവണയെങ്കിലും മാലിന്യം ശേഖരിക്കണം. ഇത് വ്യക്തമായും നടക്കുന്നില്ല.\n\nനിലവിലുള്ള മാലിന്യം ഉടൻ നീക്കം ചെയ്യാനും, വലിയ മാലിന്യപ്പെട്ടികൾ സ്ഥാപിക്കാനും, കൃത്യമായ ശേഖരണ ഷെഡ്യൂൾ കർശനമായി പാലിക്കുന്നുണ്ടെന്ന് ഉറപ്പാക്കാനും ഞങ്ങൾ അടിയന്തിര നടപടി അഭ്യർത്ഥിക്കുന്നു.",
}

// Example returns the sample complaint for the language.
func Example(lang Language) (string, bool) {
	text, ok := examples[Language(strings.ToLower(string(lang)))]
	return text, ok
}
