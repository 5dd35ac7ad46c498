package i18n

import "church/internal/domain/localized"

type translations map[localized.Lang]string

const (
	ro = localized.LangRO
	fr = localized.LangFR
	nl = localized.LangNL
)

// messages maps each English key to its other translations.
var messages = map[string]translations{
	// site
	"Weekly program":                    {ro: "Programul săptămânal", fr: "Programme hebdomadaire", nl: "Weekprogramma"},
	"Upcoming events":                   {ro: "Evenimente viitoare", fr: "Événements à venir", nl: "Komende evenementen"},
	"Verse of the month":                {ro: "Versetul lunii", fr: "Verset du mois", nl: "Vers van de maand"},
	"Gallery":                           {ro: "Galerie", fr: "Galerie", nl: "Galerij"},
	"Donations":                         {ro: "Donații", fr: "Dons", nl: "Giften"},
	"Contact":                           {ro: "Contact", fr: "Contact", nl: "Contact"},
	"Newsletter":                        {ro: "Buletin informativ", fr: "Lettre d'information", nl: "Nieuwsbrief"},
	"Subscribe":                         {ro: "Abonează-te", fr: "S'abonner", nl: "Inschrijven"},
	"Send":                              {ro: "Trimite", fr: "Envoyer", nl: "Verzenden"},
	"Name":                              {ro: "Nume", fr: "Nom", nl: "Naam"},
	"Email":                             {ro: "Email", fr: "E-mail", nl: "E-mail"},
	"Message":                           {ro: "Mesaj", fr: "Message", nl: "Bericht"},
	"No upcoming events":                {ro: "Nu sunt evenimente programate", fr: "Aucun événement à venir", nl: "Geen komende evenementen"},
	"Changed this week":                 {ro: "Modificat săptămâna aceasta", fr: "Modifié cette semaine", nl: "Deze week gewijzigd"},
	"Sign out":                          {ro: "Deconectare", fr: "Déconnexion", nl: "Afmelden"},
	"Thank you, your message was sent.": {ro: "Mulțumim, mesajul a fost trimis.", fr: "Merci, votre message a été envoyé.", nl: "Bedankt, uw bericht is verzonden."},
	"Thank you for subscribing.":        {ro: "Mulțumim pentru abonare.", fr: "Merci pour votre inscription.", nl: "Bedankt voor uw inschrijving."},
	"You are already subscribed.":       {ro: "Sunteți deja abonat.", fr: "Vous êtes déjà inscrit.", nl: "U bent al ingeschreven."},
	"Sign in":                           {ro: "Autentificare", fr: "Connexion", nl: "Aanmelden"},
	"Password":                          {ro: "Parolă", fr: "Mot de passe", nl: "Wachtwoord"},
	"Something went wrong, please try again.": {ro: "Ceva nu a mers, încercați din nou.", fr: "Une erreur est survenue, veuillez réessayer.", nl: "Er ging iets mis, probeer het opnieuw."},

	// validation and collaborator errors
	"enter a valid email address": {ro: "introduceți o adresă de email validă", fr: "saisissez une adresse e-mail valide", nl: "voer een geldig e-mailadres in"},
	"enter your name":             {ro: "introduceți numele", fr: "saisissez votre nom", nl: "voer uw naam in"},
	"name is too long":            {ro: "numele este prea lung", fr: "le nom est trop long", nl: "de naam is te lang"},
	"write a message":             {ro: "scrieți un mesaj", fr: "écrivez un message", nl: "schrijf een bericht"},
	"message is too long":         {ro: "mesajul este prea lung", fr: "le message est trop long", nl: "het bericht is te lang"},
	"your message could not be sent right now, we will retry shortly": {ro: "mesajul nu a putut fi trimis acum, vom reîncerca în curând", fr: "votre message n'a pas pu être envoyé, nous réessaierons bientôt", nl: "uw bericht kon nu niet worden verzonden, we proberen het zo opnieuw"},
	"complete all 4 languages":                                        {ro: "completați toate cele 4 limbi", fr: "remplissez les 4 langues", nl: "vul alle 4 talen in"},
	"event date must be a valid YYYY-MM-DD date":                      {ro: "data evenimentului trebuie să fie validă (AAAA-LL-ZZ)", fr: "la date doit être au format AAAA-MM-JJ", nl: "de datum moet geldig zijn (JJJJ-MM-DD)"},
	"event title is required in Romanian":                             {ro: "titlul evenimentului este obligatoriu în română", fr: "le titre de l'événement est requis en roumain", nl: "de titel is verplicht in het Roemeens"},
	"week must look like YYYY-W## with a week between 1 and 53":       {ro: "săptămâna trebuie să fie de forma AAAA-W## (1-53)", fr: "la semaine doit être au format AAAA-W## (1-53)", nl: "de week moet de vorm JJJJ-W## hebben (1-53)"},
	"announcement message is required in Romanian":                    {ro: "mesajul anunțului este obligatoriu în română", fr: "le message est requis en roumain", nl: "het bericht is verplicht in het Roemeens"},
	"program slot is not part of the weekly program":                  {ro: "programul ales nu face parte din programul săptămânal", fr: "ce créneau ne fait pas partie du programme", nl: "dit onderdeel hoort niet bij het weekprogramma"},
	"could not save, please try again":                                {ro: "nu s-a putut salva, încercați din nou", fr: "enregistrement impossible, veuillez réessayer", nl: "opslaan mislukt, probeer opnieuw"},
	"could not delete, please try again":                              {ro: "nu s-a putut șterge, încercați din nou", fr: "suppression impossible, veuillez réessayer", nl: "verwijderen mislukt, probeer opnieuw"},
	"could not load records":                                          {ro: "elementele nu au putut fi încărcate", fr: "impossible de charger les éléments", nl: "items konden niet worden geladen"},
	"another record already uses this id":                             {ro: "un alt element folosește deja acest identificator", fr: "un autre élément utilise déjà cet identifiant", nl: "een ander item gebruikt deze id al"},
	"record not found":                                                {ro: "elementul nu a fost găsit", fr: "élément introuvable", nl: "item niet gevonden"},
	"no confirmation is pending for this record":                      {ro: "nu există nicio confirmare în așteptare", fr: "aucune confirmation en attente", nl: "er wacht geen bevestiging"},
	"record is already being saved":                                   {ro: "se salvează deja", fr: "enregistrement en cours", nl: "wordt al opgeslagen"},
	"invalid email or password":                                       {ro: "email sau parolă incorectă", fr: "e-mail ou mot de passe incorrect", nl: "ongeldig e-mailadres of wachtwoord"},
	"account is locked due to too many failed attempts":               {ro: "contul este blocat temporar după prea multe încercări", fr: "compte verrouillé après trop de tentatives", nl: "account vergrendeld na te veel pogingen"},
}
